package worker

import (
	"github.com/spec-kit/marketplace-service/internal/service"
)

// StartAuditWorker registers audit handlers on the dispatcher.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
