package parser

// tagKind is the closed set of schema constructs the parser recognizes.
type tagKind uint8

const (
	tagUnsupported tagKind = iota
	tagSimpleType
	tagComplexType
	tagSequence
	tagAll
	tagChoice
	tagAttribute
	tagElement
	tagComplexContent
	tagSimpleContent
	tagExtension
	tagRestriction
	tagAnnotation
)

func classify(local string) tagKind {
	switch local {
	case "simpleType":
		return tagSimpleType
	case "complexType":
		return tagComplexType
	case "sequence":
		return tagSequence
	case "all":
		return tagAll
	case "choice":
		return tagChoice
	case "attribute":
		return tagAttribute
	case "element":
		return tagElement
	case "complexContent":
		return tagComplexContent
	case "simpleContent":
		return tagSimpleContent
	case "extension":
		return tagExtension
	case "restriction":
		return tagRestriction
	case "annotation":
		return tagAnnotation
	default:
		return tagUnsupported
	}
}
