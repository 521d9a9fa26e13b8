package service

import "github.com/aussiebroadwan/notes/internal/notes/domain"

// Recorder receives domain events for metrics. A nil Recorder on a service
// is valid and records nothing.
type Recorder interface {
	TenantRegistered()
	TenantUpgraded()
	UserInvited(role domain.Role)
	LoginFailed(reason string)
	NoteCreated(plan domain.Plan)
	NoteLimitRejected(plan domain.Plan)
}

type nopRecorder struct{}

func (nopRecorder) TenantRegistered() {}
func (nopRecorder) TenantUpgraded() {}
func (nopRecorder) UserInvited(domain.Role) {}
func (nopRecorder) LoginFailed(string) {}
func (nopRecorder) NoteCreated(domain.Plan) {}
func (nopRecorder) NoteLimitRejected(domain.Plan) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
