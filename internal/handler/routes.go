package handler

// APIV1Prefix is the canonical base path for HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// AdminPrefix is mounted under APIV1Prefix and requires an admin session.
const AdminPrefix = "/admin"

// SessionCookie carries the admin token for browser clients.
const SessionCookie = "session"
