// Package service provides application-level services for provisioning
// provider accounts and driving image generation jobs against them.
package service
