// Package mltest provides a small, fully consistent set of model and
// reference-table fixtures for tests.
package mltest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diseasepredict/ml"
)

const (
	DatasetRel      = "data/clean_dataset.tsv"
	DescriptionsRel = "data/symptom_Description.csv"
	PrecautionsRel  = "data/symptom_precaution.csv"
	ModelRel        = "model/xgboost_model.json"
)

// Symptoms is the fixture schema, in column order.
var Symptoms = []string{"itching", "skin_rash", "continuous_sneezing", "shivering", "chills", "joint_pain"}

// Diseases is the fixture catalog, already sorted.
var Diseases = []string{"Allergy", "Drug Reaction", "Fungal infection"}

// DatasetTSV is a training table whose label column yields Diseases.
const DatasetTSV = "itching\tskin_rash\tcontinuous_sneezing\tshivering\tchills\tjoint_pain\tprognosis\n" +
	"1\t1\t0\t0\t0\t0\tFungal infection\n" +
	"0\t0\t1\t1\t1\t0\tAllergy\n" +
	"1\t1\t0\t0\t0\t1\tDrug Reaction\n" +
	"1\t0\t0\t0\t0\t0\tFungal infection\n" +
	"0\t0\t1\t0\t1\t0\tAllergy\n"

// DescriptionsCSV has padded cells, a BOM and a quoted comma on purpose.
const DescriptionsCSV = "\ufeffDisease,Description\n" +
	"  Fungal infection ,\"In humans, fungal infections occur when an invading fungus takes over an area of the body. \"\n" +
	"Allergy,An allergy is an immune system response to a foreign substance.\n" +
	"Drug Reaction,An adverse drug reaction is an injury caused by taking medication.\n" +
	"Allergy,Duplicate row that must never be returned.\n"

const PrecautionsCSV = "Disease,Precaution_1,Precaution_2,Precaution_3,Precaution_4\n" +
	"Drug Reaction,stop irritation,consult nearest hospital,stop taking drug,follow up\n" +
	"Allergy ,apply calamine,cover area with bandage,,use ice to compress itching\n" +
	"Fungal infection, bath twice ,use detol or neem in bathing water,keep infected area dry,use clean cloths\n"

// Fixture holds the absolute paths of a written fixture tree.
type Fixture struct {
	Root         string
	Dataset      string
	Descriptions string
	Precautions  string
	Model        string
}

// Schema returns the schema LoadSchema produces for DatasetTSV.
func Schema() ml.Schema {
	return ml.Schema{
		Symptoms: append([]string(nil), Symptoms...),
		Label:    "prognosis",
		Diseases: append([]string(nil), Diseases...),
	}
}

// ModelDocument builds a three-class softprob model with one stump per class:
// continuous_sneezing votes Allergy, joint_pain votes Drug Reaction and
// itching votes Fungal infection.
func ModelDocument(withFeatureNames bool) ml.XGBDocument {
	doc := ml.XGBDocument{
		Version: []int{1, 7, 6},
		Learner: ml.XGBLearner{
			LearnerModelParam: ml.XGBParams{
				"base_score":  "5E-1",
				"num_class":   "3",
				"num_feature": "6",
			},
			Objective: ml.XGBObjective{Name: ml.ObjectiveMultiSoftprob},
			GradientBooster: ml.XGBBooster{
				Name: "gbtree",
				Model: ml.XGBTreeList{
					Param:    ml.XGBParams{"num_trees": "3", "num_parallel_tree": "1"},
					TreeInfo: []int{0, 1, 2},
					Trees: []ml.XGBTree{
						Stump(0, 2, -1, 2),
						Stump(1, 5, -1, 2),
						Stump(2, 0, -1, 2),
					},
				},
			},
		},
	}
	if withFeatureNames {
		doc.Learner.FeatureNames = append([]string(nil), Symptoms...)
	}
	return doc
}

// Stump is a depth-one tree splitting feature at 0.5.
func Stump(id, feature int, absent, present float64) ml.XGBTree {
	return ml.XGBTree{
		ID:              id,
		LeftChildren:    []int{1, -1, -1},
		RightChildren:   []int{2, -1, -1},
		SplitIndices:    []int{feature, 0, 0},
		SplitConditions: []float64{0.5, absent, present},
		DefaultLeft:     ml.FlexBools{true, false, false},
		TreeParam:       ml.XGBParams{"num_nodes": "3", "num_feature": "6"},
	}
}

// Model compiles ModelDocument.
func Model(t testing.TB) *ml.XGBoostModel {
	t.Helper()
	model, err := ml.NewXGBoostModel(ModelDocument(true))
	if err != nil {
		t.Fatalf("build fixture model: %v", err)
	}
	return model
}

// Write lays the fixture tree out under root.
func Write(t testing.TB, root string) Fixture {
	t.Helper()
	f := Fixture{
		Root:         root,
		Dataset:      filepath.Join(root, DatasetRel),
		Descriptions: filepath.Join(root, DescriptionsRel),
		Precautions:  filepath.Join(root, PrecautionsRel),
		Model:        filepath.Join(root, ModelRel),
	}
	WriteFile(t, f.Dataset, DatasetTSV)
	WriteFile(t, f.Descriptions, DescriptionsCSV)
	WriteFile(t, f.Precautions, PrecautionsCSV)
	if err := os.MkdirAll(filepath.Dir(f.Model), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := Model(t).Save(f.Model); err != nil {
		t.Fatalf("save fixture model: %v", err)
	}
	return f
}

func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Vector returns a fixture feature vector with the named symptoms set.
func Vector(symptoms ...string) ml.FeatureVector {
	v := make(ml.FeatureVector, len(Symptoms))
	for _, s := range symptoms {
		for i, name := range Symptoms {
			if strings.EqualFold(name, s) {
				v[i] = 1
			}
		}
	}
	return v
}
