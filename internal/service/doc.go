// Package service contains the application use cases of the package catalog.
//
// PackageService registers packages with their author and contributors,
// exposes them with their tags, and requests URL checks by emitting
// check_package_urls task events. The checks themselves run in the task
// runner; the service never performs HTTP requests.
//
// Services receive their stores through constructor injection and apply
// transactional boundaries with store.RunInTransaction when a write spans
// several tables. Store sentinels that callers branch on (not found,
// duplicate, invalid entity) stay reachable through errors.Is.
package service
