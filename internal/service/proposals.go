package service

import (
	"time"

	"github.com/google/uuid"
)

type pendingUpload struct {
	token      string
	input      UploadInput
	existingID int64
	expiresAt  time.Time
}

func (s *FileService) addProposalLocked(input UploadInput, existingID int64) *pendingUpload {
	p := &pendingUpload{
		token:      uuid.NewString(),
		input:      input,
		existingID: existingID,
		expiresAt:  s.now().Add(s.proposalTTL).UTC(),
	}
	s.proposals[p.token] = p
	return p
}

func (s *FileService) pruneProposalsLocked() {
	now := s.now()
	for token, p := range s.proposals {
		if now.After(p.expiresAt) {
			delete(s.proposals, token)
		}
	}
}

// PendingProposals 返回尚未确认的上传数量。
func (s *FileService) PendingProposals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneProposalsLocked()
	return len(s.proposals)
}
