package mapview

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FeatureCollection   = "features"
	CorrectedCollection = "corrected"
)

// Coordinate is a single display or routing position on a feature.
type Coordinate struct {
	LineID    *float64 `bson:"lineId,omitempty" json:"lineId,omitempty"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

type Address struct {
	HouseNumber  string `bson:"houseNumber" json:"houseNumber"`
	BuildingName string `bson:"buildingName" json:"buildingName"`
	StreetName   string `bson:"streetName" json:"streetName"`
	TmoStreet    string `bson:"tmoStreet" json:"tmoStreet"`
}

type NearestCoordinates struct {
	X *float64 `bson:"x,omitempty" json:"x,omitempty"`
	Y *float64 `bson:"y,omitempty" json:"y,omitempty"`
}

type Nearest struct {
	Fid         *float64           `bson:"fid,omitempty" json:"fid,omitempty"`
	Distance    *float64           `bson:"distance,omitempty" json:"distance,omitempty"`
	Coordinates NearestCoordinates `bson:"coordinates" json:"coordinates"`
}

// Feature is a single postal/address point. Optional numerics are pointers so
// absent upload fields stay absent in the document instead of storing zeroes,
// and stay float64 so fractional identifiers round-trip untouched.
// objectId is deliberately not unique; duplicate uploads are tolerated.
type Feature struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ObjectID   *float64           `bson:"objectId,omitempty" json:"objectId,omitempty"`
	CustomerID *float64           `bson:"customerId,omitempty" json:"customerId,omitempty"`
	PostalArea string             `bson:"postalArea" json:"postalArea"`
	FullPostal string             `bson:"fullPostal" json:"fullPostal"`
	RecType    string             `bson:"recType" json:"recType"`
	GeoLevel   *float64           `bson:"geoLevel,omitempty" json:"geoLevel,omitempty"`
	NtCity     string             `bson:"ntCity" json:"ntCity"`
	County     string             `bson:"county" json:"county"`
	State      string             `bson:"state" json:"state"`
	Display    Coordinate         `bson:"display" json:"display"`
	Routing    Coordinate         `bson:"routing" json:"routing"`
	Address    Address            `bson:"address" json:"address"`
	Hdb        string             `bson:"hdb" json:"hdb"`
	Nearest    Nearest            `bson:"nearest" json:"nearest"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CorrectedFeature is a point of interest that has been through the external
// verification pipeline. Lives in its own collection; the dashboard reads it,
// the analyzer writes it.
type CorrectedFeature struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Address             string             `bson:"address" json:"address"`
	Coordinates         []float64          `bson:"coordinates" json:"coordinates"`
	PoiType             string             `bson:"poi_type" json:"poi_type"`
	InitialIssues       []string           `bson:"initial_issues" json:"initial_issues"`
	SuspicionScore      float64            `bson:"suspicion_score" json:"suspicion_score"`
	AlgorithmicAnalysis bson.M             `bson:"algorithmic_analysis" json:"algorithmic_analysis"`
	VisualVerification  bson.M             `bson:"visual_verification" json:"visual_verification"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
