package auditlog

import (
	"log"

	"github.com/xhorus11/mrp/pkg/models"
)

// Recorder persists audit entries; implemented by the auditlog repository.
type Recorder interface {
	PersistLog(auditLog models.AuditLog, data interface{}) error
}

type Auditlog struct {
	r Recorder
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

func NewAuditLog(recorder Recorder) *Auditlog {
	return &Auditlog{r: recorder}
}

// Log is fire-and-forget: handlers call it in a goroutine and a failed
// audit write never fails the business operation.
func (a *Auditlog) Log(action string, data interface{}, item Auditable) {
	auditLog := item.CreateLogView()
	auditLog.Action = action

	if err := a.r.PersistLog(auditLog, data); err != nil {
		log.Println("Unable to create AuditLog entry for id ", auditLog.ResourceID)
		return
	}

	log.Println("Created AuditLog entry for id ", auditLog.ResourceID)
}
