package builtins

import "strings"

var primitives = buildRegistry()

func buildRegistry() map[string]TypeName {
	all := []TypeName{
		TypeNameAnyType, TypeNameAnySimpleType,
		TypeNameString, TypeNameBoolean, TypeNameDecimal, TypeNameFloat, TypeNameDouble,
		TypeNameDuration, TypeNameDateTime, TypeNameTime, TypeNameDate,
		TypeNameGYearMonth, TypeNameGYear, TypeNameGMonthDay, TypeNameGDay, TypeNameGMonth,
		TypeNameHexBinary, TypeNameBase64Binary, TypeNameAnyURI, TypeNameQName, TypeNameNOTATION,
		TypeNameNormalizedString, TypeNameToken, TypeNameLanguage, TypeNameName, TypeNameNCName,
		TypeNameID, TypeNameIDREF, TypeNameIDREFS, TypeNameENTITY, TypeNameENTITIES,
		TypeNameNMTOKEN, TypeNameNMTOKENS,
		TypeNameInteger, TypeNameLong, TypeNameInt, TypeNameShort, TypeNameByte,
		TypeNameNonNegativeInteger, TypeNamePositiveInteger,
		TypeNameUnsignedLong, TypeNameUnsignedInt, TypeNameUnsignedShort, TypeNameUnsignedByte,
		TypeNameNegativeInteger, TypeNameNonPositiveInteger,
	}
	reg := make(map[string]TypeName, len(all))
	for _, name := range all {
		reg[strings.ToLower(string(name))] = name
	}
	return reg
}

// Lookup returns the canonical spelling of a built-in datatype name.
// Matching is case-insensitive, like every other schema name lookup.
func Lookup(name string) (TypeName, bool) {
	tn, ok := primitives[strings.ToLower(name)]
	return tn, ok
}

// IsPrimitive reports whether name is a recognized built-in datatype.
func IsPrimitive(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Count returns the number of registered built-in datatypes.
func Count() int {
	return len(primitives)
}
