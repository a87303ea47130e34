// Package domain contains the core business entities of the system: the
// provisioned provider accounts, the generation tasks correlated with the
// provider by remote ID, and the saved artifacts and uploads. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
