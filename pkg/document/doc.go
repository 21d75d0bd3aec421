// Package document holds the in-memory XML tree every generator writes into,
// together with its serializer and parser.
//
// A tree is a strict ownership tree of *Node values. The root carries the
// document namespace, which is declared once on serialization and inherited
// implicitly by every descendant. Serialization streams through a buffered
// forward-only writer so callers that write to a file never hold both the tree
// and the serialized bytes at the same time; Marshal is the in-memory variant.
package document
