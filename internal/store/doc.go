// Package store defines the persistence interfaces consumed by the service
// layer: provider accounts, generation tasks, saved artifacts and uploaded
// input images. Implementations live under internal/platform.
package store
