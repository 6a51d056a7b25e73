// Package memory provides the in-memory key-value storage engine.
//
// Entries carry an optional absolute expiry. Expiration is lazy: an
// entry past its expiry is removed by the first Get that observes it,
// under the same lock as the check, so no reader sees a value after its
// expiry instant. There is no background sweeper.
//
// Thread Safety:
//
// Every operation holds an exclusive lock for its duration. By default
// the keyspace is one shard, i.e. one lock for the whole map; WithShards
// spreads keys over more locks. Operations on one key are linearized in
// either layout.
package memory
