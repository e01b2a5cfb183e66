package models

// Role is a room-level privilege as exposed by the platform.
type Role int

const (
	RoleNone       Role = 0
	RoleResidentDJ Role = 1000
	RoleBouncer    Role = 2000
	RoleManager    Role = 3000
	RoleCohost     Role = 4000
	RoleHost       Role = 5000
)

// GlobalRole is a platform-wide privilege, independent of any room.
type GlobalRole int

const (
	GlobalRoleNone       GlobalRole = 0
	GlobalRoleAmbassador GlobalRole = 3
	GlobalRoleModerator  GlobalRole = 5
)

// MuteReason and MuteDuration mirror the platform moderation API enums.
type MuteReason int

const (
	MuteReasonViolatingRules MuteReason = 1
	MuteReasonVerbalAbuse    MuteReason = 2
	MuteReasonSpamming       MuteReason = 3
)

type MuteDuration int

const (
	MuteShort  MuteDuration = 15 // minutes
	MuteMedium MuteDuration = 30
	MuteLong   MuteDuration = 45
)

// RoomUser is a user currently visible in the room, or a staff-listing entry
// used as the fallback source when the user is offline.
type RoomUser struct {
	ID         int64
	Username   string
	Role       Role
	GlobalRole GlobalRole
}

// Supervisory reports whether the user holds a privilege at or above bouncer,
// either in the room or globally. Supervisory users are exempt from reputation
// transitions and protected from role loss during games.
func (u RoomUser) Supervisory() bool {
	return u.Role >= RoleBouncer || u.GlobalRole >= GlobalRoleModerator
}

// WaitlistPositionNone is the sentinel returned for users not in the waitlist.
const WaitlistPositionNone = -1
