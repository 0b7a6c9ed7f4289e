package wire

// Namespace identifies one of the protocol XML namespaces.
type Namespace int

// Protocol namespaces.
const (
	NamespaceNone Namespace = iota
	NamespaceMessages
	NamespaceTypes
	NamespaceErrors
	NamespaceSoap
)

// Namespace URIs.
const (
	MessagesURI = "http://schemas.microsoft.com/exchange/services/2006/messages"
	TypesURI    = "http://schemas.microsoft.com/exchange/services/2006/types"
	ErrorsURI   = "http://schemas.microsoft.com/exchange/services/2006/errors"
	SoapURI     = "http://schemas.xmlsoap.org/soap/envelope/"
)

// URI returns the namespace URI.
func (n Namespace) URI() string {
	switch n {
	case NamespaceMessages:
		return MessagesURI
	case NamespaceTypes:
		return TypesURI
	case NamespaceErrors:
		return ErrorsURI
	case NamespaceSoap:
		return SoapURI
	default:
		return ""
	}
}

// Prefix returns the conventional prefix used when writing.
func (n Namespace) Prefix() string {
	switch n {
	case NamespaceMessages:
		return "m"
	case NamespaceTypes:
		return "t"
	case NamespaceErrors:
		return "e"
	case NamespaceSoap:
		return "soap"
	default:
		return ""
	}
}

// namespaceFromURI maps a namespace URI back to its Namespace. Fragments
// written without declarations carry the bare prefix, which maps the same.
func namespaceFromURI(uri string) Namespace {
	switch uri {
	case MessagesURI, "m":
		return NamespaceMessages
	case TypesURI, "t":
		return NamespaceTypes
	case ErrorsURI, "e":
		return NamespaceErrors
	case SoapURI, "soap":
		return NamespaceSoap
	default:
		return NamespaceNone
	}
}

// Element and attribute names shared across packages.
const (
	ElemFieldURI             = "FieldURI"
	ElemIndexedFieldURI      = "IndexedFieldURI"
	ElemExtendedFieldURI     = "ExtendedFieldURI"
	ElemExtendedProperty     = "ExtendedProperty"
	ElemValue                = "Value"
	ElemValues               = "Values"
	ElemMailbox              = "Mailbox"
	ElemItemID               = "ItemId"
	ElemFolderID             = "FolderId"
	ElemParentFolderID       = "ParentFolderId"
	ElemDistinguishedFolder  = "DistinguishedFolderId"
	ElemUpdates              = "Updates"
	ElemItems                = "Items"
	ElemFolders              = "Folders"
	ElemEntry                = "Entry"
	ElemString               = "String"
	ElemAdditionalProperties = "AdditionalProperties"
	ElemBaseShape            = "BaseShape"
	ElemResponseMessages     = "ResponseMessages"
	ElemResponseCode         = "ResponseCode"
	ElemMessageText          = "MessageText"

	AttrFieldURI      = "FieldURI"
	AttrFieldIndex    = "FieldIndex"
	AttrID            = "Id"
	AttrChangeKey     = "ChangeKey"
	AttrKey           = "Key"
	AttrResponseClass = "ResponseClass"

	// JSONTypeKey is the discriminator key of typed JSON objects.
	JSONTypeKey = "__type"
	// JSONTypeSuffix is appended to type names in the discriminator.
	JSONTypeSuffix = ":#Exchange"
)
