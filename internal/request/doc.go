// Package request implements the gated request-to-download workflow.
//
// A Workflow walks through Idle, FormOpen, Submitting and Success. Opening a
// request always starts from a fresh form and a fresh CAPTCHA challenge. A
// submission is checked field by field; a wrong numeric CAPTCHA answer
// replaces the challenge so the same question can never be retried. A valid
// submission notifies the external endpoint once (best effort) and then
// always reaches Success, which hands out the download and falls back to
// Idle after the display window.
//
// Slots keeps one workflow per visitor: opening a new request replaces the
// visitor's previous one.
package request
