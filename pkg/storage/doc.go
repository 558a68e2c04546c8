// Package storage defines the persistence interfaces for the discipleship
// platform. Implementations live in subpackages; pkg/storage/dynamo provides
// the single-table DynamoDB backend.
//
// All tenant-scoped reads and writes take the church ID explicitly. A store
// never infers the tenant from context; callers are responsible for passing
// the tenant the request was authorized for.
package storage
