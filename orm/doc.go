/*
Package orm provides an easy to use db wrapper.

Models are protobuf messages stored in a bucket under a common prefix.
Secondary indexes are maintained next to the data, in the same store, so
that every change to a model and its indexes is applied (or discarded)
together with the cache-wrap it was written to.
*/
package orm
