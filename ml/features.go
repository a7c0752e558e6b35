package ml

import (
	"diseasepredict/paths"
	"diseasepredict/textutil"
)

// DefaultSchemaWidth is the feature width of the reference symptom dataset.
// It is only used when the schema itself cannot be loaded.
const DefaultSchemaWidth = 133

// FeatureVector is a binary symptom-presence vector laid out by a Schema.
type FeatureVector []float64

// Ones counts the positions set to 1.
func (v FeatureVector) Ones() int {
	count := 0
	for _, x := range v {
		if x == 1 {
			count++
		}
	}
	return count
}

// Encoding is the result of encoding a symptom list. Unknown names are left
// out of Vector; they are listed so callers can surface typos.
type Encoding struct {
	Vector            FeatureVector
	Matched           []string
	Unknown           []string
	SchemaUnavailable bool
}

// Encoder one-hot encodes symptom names against a fixed schema.
type Encoder struct {
	schema Schema
	index  map[string]int
}

func NewEncoder(schema Schema) *Encoder {
	index := make(map[string]int, schema.Width())
	for i, name := range schema.Symptoms {
		key := textutil.NormalizeSymptom(name)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = i
	}
	return &Encoder{schema: schema, index: index}
}

func (e *Encoder) Width() int {
	return e.schema.Width()
}

// Index returns the column position of symptom.
func (e *Encoder) Index(symptom string) (int, bool) {
	idx, ok := e.index[textutil.NormalizeSymptom(symptom)]
	return idx, ok
}

// Encode builds the feature vector for symptoms. It never fails: names not in
// the schema are skipped and reported in Unknown.
func (e *Encoder) Encode(symptoms []string) Encoding {
	enc := Encoding{Vector: make(FeatureVector, e.schema.Width())}
	for _, symptom := range symptoms {
		idx, ok := e.Index(symptom)
		if !ok {
			enc.Unknown = append(enc.Unknown, symptom)
			continue
		}
		if enc.Vector[idx] == 1 {
			continue
		}
		enc.Vector[idx] = 1
		enc.Matched = append(enc.Matched, e.schema.Symptoms[idx])
	}
	return enc
}

// EncodeFromFile loads the schema at rel through resolver and encodes
// symptoms. If the schema cannot be found or read, it returns an all-zero
// vector of DefaultSchemaWidth with SchemaUnavailable set.
func EncodeFromFile(resolver *paths.Resolver, rel string, symptoms []string) Encoding {
	res := resolver.Resolve(rel)
	if !res.Found {
		return unavailableEncoding(symptoms)
	}
	schema, err := LoadSchema(res.Path)
	if err != nil {
		return unavailableEncoding(symptoms)
	}
	return NewEncoder(schema).Encode(symptoms)
}

func unavailableEncoding(symptoms []string) Encoding {
	return Encoding{
		Vector:            make(FeatureVector, DefaultSchemaWidth),
		Unknown:           append([]string(nil), symptoms...),
		SchemaUnavailable: true,
	}
}
