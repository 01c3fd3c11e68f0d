/*
Package assets moves swap legs between their owners and the escrow.

A leg names an asset registry, an asset and an amount. The Router
dispatches each leg to the registry it names and moves the asset between
an owner and the custody address that holds escrowed legs. Batch
operations are all-or-nothing: they run on a cache-wrap of the store that
is discarded as soon as any leg fails.

FungibleToken, NonFungibleToken and MultiToken are minimal registries
keeping balances in the same store. They exist so that a ledger can be
bootstrapped and tested without an external asset ledger.
*/
package assets
