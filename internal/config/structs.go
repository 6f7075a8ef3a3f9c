package config

import (
	"time"

	"github.com/corpsite/corpsite/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Download  Download
	Admin     Admin
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	DisableRecover      bool    // disable recover middleware
	Port                int     // listening port for the webserver
	ShutDownTime        int     // seconds checkalive reports 503 before shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // base64 32 byte key; empty leaves cookies unencrypted
	Session             Session // admin session settings
}

// Download configures the gated document request flow.
type Download struct {
	NotifyURL     string        // form endpoint told about each request; empty disables notification
	NotifyTimeout time.Duration // per notification
	DownloadDelay time.Duration // pause before the document download starts
	DisplayWindow time.Duration // how long the confirmation stays visible
	PageSize      int           // catalog rows per page
	SlotTTL       time.Duration // idle lifetime of a visitor's open request
}

// Admin is the back-office account created on first start.
type Admin struct {
	Username string
	Password string
	Email    string
}
