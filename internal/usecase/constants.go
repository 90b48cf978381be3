package usecase

// Event names published on the notification bus.
const (
	EventDocumentSaved   = "document.saved"
	EventDocumentDeleted = "document.deleted"
	EventExportCompleted = "export.completed"
)

// maxAllocateAttempts bounds the reservation retry loop so Allocate never
// blocks indefinitely when the counter lags far behind the store.
const maxAllocateAttempts = 64
