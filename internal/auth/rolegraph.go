package auth

// ResolvedClaims is the deduplicated set of role and permission names
// computed for one user at token-issuance time. Slices are never nil so
// they marshal as arrays.
type ResolvedClaims struct {
	Roles       []string
	Permissions []string
}

// ResolveClaims flattens a user's role graph into claim sets. A
// permission reachable through several roles appears once; a join row
// whose Permission side is unresolved is skipped. A user with no roles
// resolves to empty sets.
func ResolveClaims(roles []Role) ResolvedClaims {
	claims := ResolvedClaims{
		Roles:       make([]string, 0, len(roles)),
		Permissions: []string{},
	}

	seenRoles := make(map[string]struct{}, len(roles))
	seenPerms := make(map[string]struct{})

	for _, role := range roles {
		if _, dup := seenRoles[role.Name]; !dup {
			seenRoles[role.Name] = struct{}{}
			claims.Roles = append(claims.Roles, role.Name)
		}

		for _, rp := range role.RolePermissions {
			if rp.Permission == nil {
				continue
			}
			name := rp.Permission.Name
			if _, dup := seenPerms[name]; dup {
				continue
			}
			seenPerms[name] = struct{}{}
			claims.Permissions = append(claims.Permissions, name)
		}
	}

	return claims
}
