package main

// Valid export formats.
var validFormats = []string{"json", "jsonl", "markdown"}
