// Package federation attaches independently-authored place databases
// into one logical query namespace and executes compiled queries
// against it.
//
// Attachment builds per-table UNION ALL views spanning every source,
// each row tagged with its source alias so cross-source id collisions
// stay distinguishable. The unified view is constructed once at attach
// time and is read-only afterwards, so concurrent reads need no
// locking. Source file handles are owned exclusively by the Federation
// for the life of the connection.
package federation
