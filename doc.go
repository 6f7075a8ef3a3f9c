// Package main provides the entry point of the corporate website. It serves
// the public tender and contract catalogs, where documents are requested
// through a captcha gated form, and the back-office where roles and their
// permission matrices are managed. Data lives in gorm (sqlite, mysql or
// postgres) and the web layer runs on Fiber.
package main
