package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconDocument = "▤" // Entry in the merge list
	IconFirst    = "¹" // Base document (merge starts here)
	IconMissing  = "✗" // Dropped path no longer exists
	IconOK       = "✓" // Action succeeded
	IconWarn     = "!" // Warning notice
	IconCursor   = "›" // Selected row
)
