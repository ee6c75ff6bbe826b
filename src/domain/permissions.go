package domain

import (
	"fmt"
	"slices"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

type Permission string

const (
	PermAnalyticsView          Permission = "analytics.view"
	PermAnalyticsExport        Permission = "analytics.export"
	PermAnalyticsViewDetailed  Permission = "analytics.view.detailed"
	PermAnalyticsViewFinancial Permission = "analytics.view.financial"
	PermAnalyticsCustomize     Permission = "analytics.customize"
	PermAnalyticsShare         Permission = "analytics.share"
	PermUsersManage            Permission = "users.manage"
	PermUsersView              Permission = "users.view"
	PermSurveysManage          Permission = "surveys.manage"
	PermSurveysCreate          Permission = "surveys.create"
	PermSurveysEdit            Permission = "surveys.edit"
	PermSurveysRespond         Permission = "surveys.respond"
	PermOrganizationManage     Permission = "organization.manage"
	PermProfileEdit            Permission = "profile.edit"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermAnalyticsView,
		PermAnalyticsExport,
		PermAnalyticsViewDetailed,
		PermAnalyticsViewFinancial,
		PermAnalyticsCustomize,
		PermAnalyticsShare,
		PermUsersManage,
		PermSurveysManage,
		PermOrganizationManage,
	},
	RoleManager: {
		PermAnalyticsView,
		PermAnalyticsExport,
		PermAnalyticsViewDetailed,
		PermAnalyticsShare,
		PermSurveysCreate,
		PermSurveysEdit,
		PermUsersView,
	},
	RoleUser: {
		PermAnalyticsView,
		PermSurveysRespond,
		PermProfileEdit,
	},
}

// ParseRole normaliza o papel vindo do proxy de autenticação.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// HasPermission reports whether role grants permission. Unknown roles grant nothing.
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(rolePermissions[role], permission)
}

func HasAnyPermission(role Role, permissions ...Permission) bool {
	for _, permission := range permissions {
		if HasPermission(role, permission) {
			return true
		}
	}
	return false
}

// PermissionsFor devolve uma cópia das permissões do papel.
func PermissionsFor(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}
