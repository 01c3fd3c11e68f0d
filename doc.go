/*
Package htlc defines the interfaces shared by the hash/time-locked exchange
extensions: storage, messages, handlers, context helpers, addresses and the
ledger clock.

Extensions living under x/ are composed explicitly. The swap registry in
x/aswap receives a commitment scheme (x/hashlock), an asset transfer adapter
(x/assets), an access gate (x/access), an audit feed (x/audit) and a clock
as constructor arguments rather than inheriting behaviour.
*/
package htlc
