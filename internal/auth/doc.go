// Package auth authenticates back-office users and authorizes their requests
// against the permission matrix of their role.
//
// Users log in with a local username and an Argon2id hashed password. Each
// user holds exactly one role; a route declares the (section, action) pair it
// needs and RequirePermission checks it against that role's matrix:
//
//	app.Get("/admin/roles",
//	    auth.RequirePermission(authService, permission.SectionUsers, permission.ActionView),
//	    handler,
//	)
//
// AddPermissionsToLocals exposes the matrix to templates so menus and
// buttons can be hidden for actions the user may not take.
package auth
