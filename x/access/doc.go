/*
Package access implements the gate consulted before swap operations.

Operator and compliance decisions are delegated to a Policy. RoleStore is
a Policy keeping role assignments in the ledger store, administered by the
admin address declared in the package configuration. The gate also holds
the global pause flag. While paused, new swaps cannot be created or
completed, but refunds are always available.
*/
package access
