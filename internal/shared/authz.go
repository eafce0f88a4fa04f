package shared

// Permission names mirrored from the platform role definitions. The panel
// never decides authorization for reveals itself (the platform does, with
// its own audit write); these gate panel routes only.
const (
	PermCompaniesView      = "companies.view"
	PermUsersView          = "users.view"
	PermEstablishmentsView = "establishments.view"

	PermLGPDReveal = "lgpd.reveal"
	PermLGPDExport = "lgpd.export"
	PermLGPDDelete = "lgpd.delete"

	PermAuditView = "audit.view"
)
