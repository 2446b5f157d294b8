// Package mtl implements the Metadata Template Language, a small expression
// language for building strings such as file and directory names from metadata.
//
// A template is literal text with embedded expressions in braces. Each
// expression names a field that is looked up through a chain of resolvers, and
// every field may resolve to several values. Rendering produces one output
// string per combination of values.
//
// # Quick Start
//
//	resolver := mtl.MapResolver{
//	    "artist": {"Apoxode"},
//	    "genre":  {"Ambient", "Electronic"},
//	}
//	results, err := mtl.NewRenderer([]mtl.Resolver{resolver}).Render("{genre|lower}/{artist}")
//	// results == []string{"ambient/Apoxode", "electronic/Apoxode"}
//
// # Template Syntax
//
//	{field}                      - value(s) of field
//	{field:subfield}             - qualified lookup, e.g. {created:year}
//	{field,default}              - default when field has no value
//	{+field} {DELIM+field}       - join multiple values into one
//	{field|filter|filter(arg)}   - filters applied left to right
//	{field[find,replace|a,b]}    - find/replace pairs
//	{field contains x?yes,no}    - conditionals; also matches, startswith,
//	                               endswith, ==, !=, <, <=, >, >= and "not"
//	{var:name,value} {%name}     - variables
//	{comma} {pipe} {openbrace}   - punctuation that is otherwise syntax
//	{strip,TEMPLATE}             - trim rendered values
//	{format:int:03d,TEMPLATE}    - format values as int, float or str
//
// Default, boolean and comparison values are themselves templates and may nest.
//
// # Errors
//
// Parse failures are reported as *TemplateSyntaxError. A field no resolver
// recognizes yields *UnknownFieldError, and misuse detected while rendering
// (unbound variables, missing filter arguments, non-numeric comparisons) yields
// *SyntaxError. Errors returned by resolvers and filter handlers are passed
// through unchanged. A failed render returns no results.
//
// # Configuration
//
// Defaults come from the environment (MTL_LOG_LEVEL, MTL_NONE_STR,
// MTL_INPLACE_SEP, MTL_EXPAND_INPLACE, MTL_SORT_INPLACE, MTL_STRIP,
// MTL_MAX_DEPTH, MTL_CACHE_MAX_SIZE, MTL_CACHE_TTL) and can be overridden per
// renderer with options.
package mtl
