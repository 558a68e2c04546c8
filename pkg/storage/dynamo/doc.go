// Package dynamo implements the storage interfaces on a single DynamoDB
// table.
//
// Key layout:
//
//	Users     PK=CHURCH#<churchId>  SK=USER#<id>
//	Churches  PK=CHURCH#<id>        SK=CHURCH#<id>
//	Students  PK=CHURCH#<churchId>  SK=STUDENT#<id>
//	Studies   PK=CHURCH#<churchId>  SK=STUDY#<id>
//	Lessons   PK=STUDY#<studyId>    SK=LESSON#<id>
//
// GSI1 (GSI1PK) indexes users by lowercased email for cross-tenant login
// lookup. GSI2 (GSI2PK, GSI2SK) indexes every entity by type for
// platform-wide listing; for churches GSI2SK carries the slug, for lessons
// the lesson id, so both can be resolved without knowing the partition.
//
// Pagination is cursor based: LastEvaluatedKey is round-tripped through the
// opaque tokens produced by the storage package. List calls that carry a
// filter expression may return short pages; the cursor still advances, so
// iterating to an empty cursor visits every matching item exactly once.
package dynamo
