package domain

import "errors"

var (
	ErrVoteNotFound         = errors.New("vote not found")
	ErrNotAllowed           = errors.New("this email is not permitted to vote")
	ErrDuplicateVote        = errors.New("a vote already exists for this user")
	ErrAlreadyVoted         = errors.New("user has already voted")
	ErrEmptySelection       = errors.New("select at least one choice before voting")
	ErrTooManyChoices       = errors.New("at most two choices can be selected")
	ErrNoOpinionCombined    = errors.New("\"no opinion\" cannot be combined with another choice")
	ErrInvalidChoice        = errors.New("invalid choice")
	ErrSelectionDisabled    = errors.New("voting is not available for this session")
	ErrSubmissionInProgress = errors.New("a vote is already being submitted")
	ErrNotSignedIn          = errors.New("not signed in")
	ErrSessionExpired       = errors.New("session expired, please sign in again")
)

// IsValidation reports whether err is a ballot rule violation the user can fix by changing
// the selection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrTooManyChoices) ||
		errors.Is(err, ErrNoOpinionCombined) ||
		errors.Is(err, ErrInvalidChoice)
}
