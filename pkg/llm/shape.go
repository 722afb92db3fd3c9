package llm

// TypeTag is the JSON type expected for a field.
type TypeTag string

const (
	TypeString  TypeTag = "string"
	TypeNumber  TypeTag = "number"
	TypeInteger TypeTag = "integer"
	TypeBoolean TypeTag = "boolean"
	TypeObject  TypeTag = "object"
	TypeArray   TypeTag = "array"
)

// Shape describes a record the model is asked to produce. It drives both the
// schema text placed in prompts and the validation of the model's answer.
// Shapes are treated as immutable once built.
type Shape struct {
	Name        string
	Description string
	Fields      []Field
}

// Field is one member of a Shape. For arrays, Elem is the element type and
// Shape is set when elements are objects. For objects, Shape may be nil to
// accept any object.
type Field struct {
	Name        string
	Type        TypeTag
	Elem        TypeTag
	Shape       *Shape
	Required    bool
	Description string
}

func Required(name string, t TypeTag, desc string) Field {
	return Field{Name: name, Type: t, Required: true, Description: desc}
}

func Optional(name string, t TypeTag, desc string) Field {
	return Field{Name: name, Type: t, Description: desc}
}

func Object(name string, shape *Shape, required bool, desc string) Field {
	return Field{Name: name, Type: TypeObject, Shape: shape, Required: required, Description: desc}
}

func ListOf(name string, elem TypeTag, required bool, desc string) Field {
	return Field{Name: name, Type: TypeArray, Elem: elem, Required: required, Description: desc}
}

func ListOfShape(name string, shape *Shape, required bool, desc string) Field {
	return Field{Name: name, Type: TypeArray, Elem: TypeObject, Shape: shape, Required: required, Description: desc}
}

func (f Field) typeName() string {
	switch f.Type {
	case TypeObject:
		if f.Shape != nil {
			return f.Shape.Name
		}
		return string(TypeObject)
	case TypeArray:
		elem := string(f.Elem)
		if f.Shape != nil {
			elem = f.Shape.Name
		} else if elem == "" {
			elem = "any"
		}
		return "List[" + elem + "]"
	default:
		return string(f.Type)
	}
}
