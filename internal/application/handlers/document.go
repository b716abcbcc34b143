package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/domain/ports"
	"github.com/ersonp/osl-core/internal/domain/services"
	"github.com/ersonp/osl-core/internal/infrastructure/codec"
)

var errNoStore = errors.New("no document store configured")

// DocumentHandler handles document conversion, bundling and storage.
type DocumentHandler struct {
	factory *services.Factory
	store   ports.DocumentStore
	logger  *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler. store may be nil for
// handlers that only convert.
func NewDocumentHandler(factory *services.Factory, store ports.DocumentStore, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{
		factory: factory,
		store:   store,
		logger:  logger,
	}
}

// StoreResult contains the result of storing a bundle.
type StoreResult struct {
	RootID    string
	Documents []*entities.StoredDocument
}

// ResolveResult contains a document rebuilt from the store.
type ResolveResult struct {
	Root *entities.Instance
	// Linked is the number of stored documents joined into the graph.
	Linked int
	// Unresolved lists referenced ids missing from the store.
	Unresolved []string
}

// HandleDecode decodes data written in the named dialect.
func (h *DocumentHandler) HandleDecode(data []byte, from string) (*entities.Instance, error) {
	c, err := codec.ForDialect(from, h.factory, codec.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	inst, err := c.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s document: %w", c.Dialect(), err)
	}
	return inst, nil
}

// HandleConvert re-encodes a document from one dialect into another.
func (h *DocumentHandler) HandleConvert(data []byte, from, to string) ([]byte, error) {
	inst, err := h.HandleDecode(data, from)
	if err != nil {
		return nil, err
	}
	c, err := codec.ForDialect(to, h.factory, codec.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	out, err := c.Marshal(inst)
	if err != nil {
		return nil, fmt.Errorf("encoding %s document: %w", c.Dialect(), err)
	}
	return out, nil
}

// HandleBundle decodes a document and shards it into native bundle members,
// root first.
func (h *DocumentHandler) HandleBundle(data []byte, from string) ([]string, error) {
	inst, err := h.HandleDecode(data, from)
	if err != nil {
		return nil, err
	}
	bundle, err := codec.NewNative(h.factory, codec.WithLogger(h.logger)).Bundle(inst)
	if err != nil {
		return nil, fmt.Errorf("bundling: %w", err)
	}
	return bundle, nil
}

// HandleStoreBundle decodes a document, shards it and saves every member.
func (h *DocumentHandler) HandleStoreBundle(ctx context.Context, data []byte, from string) (*StoreResult, error) {
	if h.store == nil {
		return nil, errNoStore
	}
	inst, err := h.HandleDecode(data, from)
	if err != nil {
		return nil, err
	}
	_, members, err := codec.NewNative(h.factory, codec.WithLogger(h.logger)).Shard(inst)
	if err != nil {
		return nil, fmt.Errorf("sharding: %w", err)
	}

	result := &StoreResult{}
	for i, member := range members {
		doc, err := storedDocument(member)
		if err != nil {
			return nil, fmt.Errorf("bundle member %d: %w", i, err)
		}
		if err := h.store.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("storing %s: %w", doc.ID, err)
		}
		h.logger.Info("stored document", zap.String("id", doc.ID), zap.String("type", doc.Type))
		result.Documents = append(result.Documents, doc)
	}
	result.RootID = result.Documents[0].ID
	return result, nil
}

// HandleGet returns a stored document.
func (h *DocumentHandler) HandleGet(ctx context.Context, id string) (*entities.StoredDocument, error) {
	if h.store == nil {
		return nil, errNoStore
	}
	doc, err := h.store.FindDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

// HandleListStored lists stored documents, optionally filtered by entity key.
// docType may be bare or fully qualified.
func (h *DocumentHandler) HandleListStored(ctx context.Context, docType string) ([]*entities.StoredDocument, error) {
	if h.store == nil {
		return nil, errNoStore
	}
	if docType != "" {
		onto := h.factory.Ontology()
		bare, err := onto.CheckAndStrip(docType)
		if err != nil {
			return nil, err
		}
		docType = onto.FullTypeKey(bare)
	}
	docs, err := h.store.ListDocuments(ctx, docType)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// HandleDelete removes a stored document.
func (h *DocumentHandler) HandleDelete(ctx context.Context, id string) error {
	if h.store == nil {
		return errNoStore
	}
	if err := h.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// HandleResolve rebuilds a document from the store, following references
// until every reachable stored document is linked in. The result may hold
// cycles, so it must not be sharded again.
func (h *DocumentHandler) HandleResolve(ctx context.Context, id string) (*ResolveResult, error) {
	if h.store == nil {
		return nil, errNoStore
	}
	native := codec.NewNative(h.factory, codec.WithLogger(h.logger))

	var bundle []string
	var unresolved []string
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		doc, err := h.store.FindDocument(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("finding document %s: %w", next, err)
		}
		if doc == nil {
			if next == id {
				return nil, fmt.Errorf("document not found: %s", id)
			}
			h.logger.Debug("reference not in store", zap.String("id", next))
			unresolved = append(unresolved, next)
			continue
		}
		bundle = append(bundle, string(doc.Body))

		inst, err := native.Unmarshal(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding stored document %s: %w", next, err)
		}
		refs, err := services.CollectReferences(inst)
		if err != nil {
			return nil, fmt.Errorf("collecting references of %s: %w", next, err)
		}
		for _, ref := range refs {
			if !seen[ref.ID] {
				seen[ref.ID] = true
				queue = append(queue, ref.ID)
			}
		}
	}

	root, err := Relink(h.factory, bundle)
	if err != nil {
		return nil, err
	}
	return &ResolveResult{
		Root:       root,
		Linked:     len(bundle),
		Unresolved: unresolved,
	}, nil
}

// storedDocument lifts the row fields out of a sharded native member.
func storedDocument(member map[string]any) (*entities.StoredDocument, error) {
	meta, _ := member["_meta"].(map[string]any)
	id, _ := meta["uid"].(string)
	docType, _ := meta["type"].(string)
	if id == "" || docType == "" {
		return nil, fmt.Errorf("member without uid or type: %w", entities.ErrMalformedDocument)
	}
	version, _ := meta["version"].(int)
	name, _ := member["name"].(string)

	body, err := json.Marshal(member)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", id, err)
	}
	return &entities.StoredDocument{
		ID:      id,
		Type:    docType,
		Name:    name,
		Version: version,
		Body:    body,
	}, nil
}
