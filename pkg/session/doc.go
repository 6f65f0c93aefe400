/*
Package session implements instance access control and persistence orchestration.

It is the hosting runtime of the list service: writers on one instance are
serialized through a ref-counted in-process mutex (plus an optional distributed
lock for multi-replica deployments) and commit through a load-modify-save
transaction; readers load committed snapshots without locking.
*/
package session
