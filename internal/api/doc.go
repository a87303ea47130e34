// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts HTTP concerns onto the account
// provisioning, image generation and upload services.
package api
