// Package permission implements the role permission matrix of the admin area.
//
// A Role owns a sparse Matrix mapping each Section to the set of Actions it
// allows. Sections and actions are closed sets: strings coming from forms or
// storage are parsed at the boundary, so a Matrix can never reference an
// unknown section or action.
//
// The toggle operations (cell, section row, action column, select all and
// clear all) work on a single Matrix, i.e. the permissions of the role being
// edited. They never reach across the role collection.
//
// Service combines the matrix with role lifecycle (create, update, delete,
// seed) on top of a Repository. System roles can be edited but DeleteRole
// rejects them with ErrSystemRole.
package permission
