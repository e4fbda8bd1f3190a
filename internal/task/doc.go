// Package task manages background job queuing, processing, and lifecycle.
// It persists submitted tasks so that work interrupted by a restart is
// recovered, and it hosts the package URL check job that tags packages with
// unreachable URLs and notifies the people responsible for them.
package task
