// Package domain contains the core business entities of the package catalog:
// packages, their authors and contributors, tags, users and notifications.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
