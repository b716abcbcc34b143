package handlers

import (
	"fmt"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/services"
)

// OntologyHandler handles ontology introspection.
type OntologyHandler struct {
	factory *services.Factory
}

// NewOntologyHandler creates a new OntologyHandler.
func NewOntologyHandler(factory *services.Factory) *OntologyHandler {
	return &OntologyHandler{
		factory: factory,
	}
}

// EntitySummary is one line of an entity listing.
type EntitySummary struct {
	Key        string
	Type       string
	Base       string
	IsDocument bool
	IsAbstract bool
	Doc        string
}

// EntityDescription is the resolved view of one entity.
type EntityDescription struct {
	Key         string
	FullTypeKey string
	Type        string
	Hierarchy   []string
	IsDocument  bool
	IsAbstract  bool
	IsOpen      bool
	Doc         string
	Properties  []entities.PropertyDefinition
	Defaults    []entities.Constraint
	Members     []entities.EnumMember
}

// HandleList lists the entities of pkg, or of every package when pkg is empty.
func (h *OntologyHandler) HandleList(pkg string) ([]EntitySummary, error) {
	onto := h.factory.Ontology()
	if onto == nil {
		return nil, fmt.Errorf("no ontology loaded")
	}

	keys := onto.Keys()
	if pkg != "" {
		var err error
		keys, err = onto.PackageContents(pkg)
		if err != nil {
			return nil, fmt.Errorf("listing package: %w", err)
		}
	}

	result := make([]EntitySummary, 0, len(keys))
	for _, key := range keys {
		d, _ := onto.Descriptor(key)
		result = append(result, EntitySummary{
			Key:        d.Key,
			Type:       d.Type,
			Base:       d.Base,
			IsDocument: d.IsDocument,
			IsAbstract: d.IsAbstract,
			Doc:        d.Doc,
		})
	}
	return result, nil
}

// HandleDescribe returns the resolved description of an entity. key may be
// bare or fully qualified.
func (h *OntologyHandler) HandleDescribe(key string) (*EntityDescription, error) {
	onto := h.factory.Ontology()
	if onto == nil {
		return nil, fmt.Errorf("no ontology loaded")
	}
	bare, err := onto.CheckAndStrip(key)
	if err != nil {
		return nil, err
	}
	d, ok := onto.Descriptor(bare)
	if !ok {
		return nil, fmt.Errorf("describing %s: %w", key, entities.ErrUnknownEntity)
	}

	desc := &EntityDescription{
		Key:         d.Key,
		FullTypeKey: d.FullTypeKey,
		Type:        d.Type,
		Hierarchy:   append([]string(nil), d.BaseHierarchy...),
		IsDocument:  d.IsDocument,
		IsAbstract:  d.IsAbstract,
		IsOpen:      d.IsOpen,
		Doc:         d.Doc,
		Members:     d.Members,
	}
	if d.IsClass() {
		c, err := h.factory.Class(bare)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", key, err)
		}
		desc.Properties = c.Properties
		desc.Defaults = c.Defaults
	}
	return desc, nil
}
