package services

import (
	"time"

	"github.com/complaintdesk/backend/internal/models"
)

// StampAudit initialises the creator fields once and refreshes the modifier
// fields on every call. An actorID of zero stands for the system actor.
func StampAudit(c *models.Complaint, actorID uint, now time.Time) {
	if actorID == 0 {
		actorID = models.SystemActorID
	}

	if c.CreatedBy == nil {
		createdBy := actorID
		c.CreatedBy = &createdBy
	}
	if c.CreatedDate == nil {
		createdDate := now
		c.CreatedDate = &createdDate
	}

	modifiedBy := actorID
	modifiedDate := now
	c.LastModifiedBy = &modifiedBy
	c.LastModifiedDate = &modifiedDate
}
