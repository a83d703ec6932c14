package tools

// Annotation presets for the MCP tool hints. Rig tools pick the preset that
// matches what they do to the scene; clients use the hints to decide how
// much confirmation to ask for.

// ReadOnlyAnnotations marks tools that only inspect rig or host state.
func ReadOnlyAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    true,
		"destructiveHint": false,
		"idempotentHint":  true,
		"openWorldHint":   false,
	}
}

// DestructiveAnnotations marks tools that remove scene nodes.
func DestructiveAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": true,
		"idempotentHint":  false,
		"openWorldHint":   false,
	}
}

// SafeWriteAnnotations marks tools whose repeat runs settle into the same
// scene state.
func SafeWriteAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": false,
		"idempotentHint":  true,
		"openWorldHint":   false,
	}
}

// NonIdempotentWriteAnnotations marks tools where every run moves the rig
// again, like growing the spine.
func NonIdempotentWriteAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": false,
		"idempotentHint":  false,
		"openWorldHint":   false,
	}
}
