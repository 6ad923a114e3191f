// Package surface holds the last published value per key and notifies
// subscribers when a value is replaced.
//
// A Topic is the state a view renders from. Only the read path publishes;
// clearing the cache underneath leaves published values in place until the
// next successful read replaces them.
package surface
