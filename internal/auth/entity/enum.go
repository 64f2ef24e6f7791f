package entity

// ChallengeKind names the action a pending challenge gates.
type ChallengeKind string

const (
	// ChallengeKindRegistration gates creation of a proposed account.
	ChallengeKindRegistration ChallengeKind = "registration"

	// ChallengeKindLogout gates termination of an existing session.
	ChallengeKindLogout ChallengeKind = "logout"
)

func (k ChallengeKind) String() string {
	return string(k)
}

// IsValid reports whether k is a known kind.
func (k ChallengeKind) IsValid() bool {
	switch k {
	case ChallengeKindRegistration, ChallengeKindLogout:
		return true
	default:
		return false
	}
}
