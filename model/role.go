package model

import (
	"strings"
)

// Role is a player's fantasy scoring role. RoleUnknown scores base points
// only; everything a scrape discovers without an assignment defaults to flex.
type Role string

const (
	RoleDuelist    Role = "duelist"
	RoleInitiator  Role = "initiator"
	RoleController Role = "controller"
	RoleSentinel   Role = "sentinel"
	RoleFlex       Role = "flex"
	RoleUnknown    Role = "unknown"
)

// Roles lists the assignable roles, in display order.
var Roles = []Role{RoleDuelist, RoleInitiator, RoleController, RoleSentinel, RoleFlex}

func ParseRole(role string) Role {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "duelist":
		return RoleDuelist
	case "initiator":
		return RoleInitiator
	case "controller":
		return RoleController
	case "sentinel":
		return RoleSentinel
	default:
		return RoleFlex
	}
}
