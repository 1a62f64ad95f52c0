package apierr

var (
	BadRequest = APIError{
		Code:    "INVALID_REQUEST",
		Message: "invalid request body",
	}
	Unauthorized = APIError{
		Code:    "UNAUTHORIZED_REQUEST",
		Message: "unauthorized request",
	}
	NotFound = APIError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
	InternalServerError = APIError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "internal server error",
	}

	EmptyTeamName = APIError{
		Code:    "EMPTY_TEAM_NAME",
		Message: "team name must not be empty",
	}
	EmptyAwardName = APIError{
		Code:    "EMPTY_AWARD_NAME",
		Message: "award name must not be empty",
	}
	EmptyEventName = APIError{
		Code:    "EMPTY_EVENT_NAME",
		Message: "event name must not be empty",
	}
	InvalidDates = APIError{
		Code:    "INVALID_DATES",
		Message: "event must not end before it starts",
	}
	AwardEventMismatch = APIError{
		Code:    "AWARD_EVENT_MISMATCH",
		Message: "award does not belong to the team's event",
	}
	EmptyLifecycle = APIError{
		Code:    "EMPTY_LIFECYCLE",
		Message: "state, hackUntil or voteUntil required",
	}
	InvalidPhase = APIError{
		Code:    "INVALID_PHASE",
		Message: "unknown hackathon state",
	}
	NoMembers = APIError{
		Code:    "NO_MEMBERS",
		Message: "team must keep at least one member",
	}
	InvalidImage = APIError{
		Code:    "INVALID_IMAGE",
		Message: "image is empty, too large or not a supported format",
	}

	NotTeamMember = APIError{
		Code:    "NOT_TEAM_MEMBER",
		Message: "only team members or admins can change this team",
	}
	SelfVote = APIError{
		Code:    "SELF_VOTE",
		Message: "cannot vote for your own team",
	}
	AdminOnly = APIError{
		Code:    "ADMIN_ONLY",
		Message: "admin rights required",
	}

	DuplicateVote = APIError{
		Code:    "DUPLICATE_VOTE",
		Message: "vote already cast for this team and award",
	}
	AwardExists = APIError{
		Code:    "AWARD_EXISTS",
		Message: "award name already exists in this event",
	}
	TeamHasVotes = APIError{
		Code:    "TEAM_HAS_VOTES",
		Message: "team is protected by votes",
	}
	AlreadyInTeam = APIError{
		Code:    "ALREADY_IN_TEAM",
		Message: "user already belongs to a team in this event",
	}
	MemberHasVoted = APIError{
		Code:    "MEMBER_HAS_VOTED",
		Message: "user already voted for this team",
	}
	SlugTaken = APIError{
		Code:    "SLUG_TAKEN",
		Message: "an event with this name is being created, retry",
	}
	VotingNotOpen = APIError{
		Code:    "VOTING_NOT_OPEN",
		Message: "event is not in the voting phase",
	}
	PhaseClosed = APIError{
		Code:    "PHASE_CLOSED",
		Message: "operation is not allowed in the current phase",
	}
)
