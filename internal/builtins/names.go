package builtins

// XSDNamespace is the namespace of the built-in schema datatypes.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// TypeName is the local name of a built-in datatype.
type TypeName string

const (
	TypeNameAnyType       TypeName = "anyType"
	TypeNameAnySimpleType TypeName = "anySimpleType"

	TypeNameString       TypeName = "string"
	TypeNameBoolean      TypeName = "boolean"
	TypeNameDecimal      TypeName = "decimal"
	TypeNameFloat        TypeName = "float"
	TypeNameDouble       TypeName = "double"
	TypeNameDuration     TypeName = "duration"
	TypeNameDateTime     TypeName = "dateTime"
	TypeNameTime         TypeName = "time"
	TypeNameDate         TypeName = "date"
	TypeNameGYearMonth   TypeName = "gYearMonth"
	TypeNameGYear        TypeName = "gYear"
	TypeNameGMonthDay    TypeName = "gMonthDay"
	TypeNameGDay         TypeName = "gDay"
	TypeNameGMonth       TypeName = "gMonth"
	TypeNameHexBinary    TypeName = "hexBinary"
	TypeNameBase64Binary TypeName = "base64Binary"
	TypeNameAnyURI       TypeName = "anyURI"
	TypeNameQName        TypeName = "QName"
	TypeNameNOTATION     TypeName = "NOTATION"

	TypeNameNormalizedString TypeName = "normalizedString"
	TypeNameToken            TypeName = "token"
	TypeNameLanguage         TypeName = "language"
	TypeNameName             TypeName = "Name"
	TypeNameNCName           TypeName = "NCName"
	TypeNameID               TypeName = "ID"
	TypeNameIDREF            TypeName = "IDREF"
	TypeNameIDREFS           TypeName = "IDREFS"
	TypeNameENTITY           TypeName = "ENTITY"
	TypeNameENTITIES         TypeName = "ENTITIES"
	TypeNameNMTOKEN          TypeName = "NMTOKEN"
	TypeNameNMTOKENS         TypeName = "NMTOKENS"

	TypeNameInteger            TypeName = "integer"
	TypeNameLong               TypeName = "long"
	TypeNameInt                TypeName = "int"
	TypeNameShort              TypeName = "short"
	TypeNameByte               TypeName = "byte"
	TypeNameNonNegativeInteger TypeName = "nonNegativeInteger"
	TypeNamePositiveInteger    TypeName = "positiveInteger"
	TypeNameUnsignedLong       TypeName = "unsignedLong"
	TypeNameUnsignedInt        TypeName = "unsignedInt"
	TypeNameUnsignedShort      TypeName = "unsignedShort"
	TypeNameUnsignedByte       TypeName = "unsignedByte"
	TypeNameNegativeInteger    TypeName = "negativeInteger"
	TypeNameNonPositiveInteger TypeName = "nonPositiveInteger"
)
