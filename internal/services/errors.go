package services

import "errors"

var (
	// ErrReferenceNotFound means a caller-supplied lookup key (type code,
	// status name, department code, coordinates) did not resolve.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrAssigneeNotFound means the assignee id does not name an employee.
	ErrAssigneeNotFound = errors.New("assignee not found")
	// ErrComplaintNotFound means no complaint exists with the requested id.
	ErrComplaintNotFound = errors.New("complaint not found")
	// ErrInvalidCoordinates means a supplied latitude or longitude lies
	// outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrAttachmentNotFound means no attachment exists with the requested id.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrStorageUnavailable is returned for attachment operations when no
	// object storage is configured.
	ErrStorageUnavailable = errors.New("attachment storage is not configured")
)
