package db

var (
	NamespacePublishedInterface = []byte("pi")
	NamespaceDeployedAccount    = []byte("da")
	NamespaceDeploymentRecord   = []byte("dr")
	NamespaceLatestDeployment   = []byte("ld")
	EmptyKey                    = []byte{}
	Separator                   = []byte("|")
)

// PrependNamespace builds the physical key for key inside namespace.
func PrependNamespace(namespace []byte, key []byte) []byte {
	if namespace != nil {
		out := make([]byte, 0, len(namespace)+len(Separator)+len(key))
		out = append(out, namespace...)
		out = append(out, Separator...)
		return append(out, key...)
	}
	return key
}

// StripNamespace is the inverse of PrependNamespace.
func StripNamespace(namespace []byte, key []byte) []byte {
	if namespace == nil {
		return key
	}
	n := len(namespace) + len(Separator)
	if len(key) < n {
		return nil
	}
	return key[n:]
}

func ConvNilToBytes(byteArray []byte) []byte {
	if byteArray == nil {
		return []byte{}
	}
	return byteArray
}
