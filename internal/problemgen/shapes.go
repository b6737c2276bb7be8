package problemgen

import (
	"fmt"
	"math/rand/v2"

	"mathclash/internal/models"
)

// Shape is one entry of the building palette
type Shape struct {
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

func (s Shape) String() string {
	return s.Color + " " + s.Kind
}

// Palette lists the shapes a learner can place; choice values index it
var Palette = []Shape{
	{Kind: "circle", Color: "red"},
	{Kind: "circle", Color: "orange"},
	{Kind: "circle", Color: "green"},
	{Kind: "square", Color: "blue"},
	{Kind: "square", Color: "purple"},
	{Kind: "triangle", Color: "red"},
	{Kind: "triangle", Color: "orange"},
	{Kind: "rectangle", Color: "gray"},
	{Kind: "rectangle", Color: "yellow"},
}

// Requirement is a minimum count of one palette shape
type Requirement struct {
	Shape    int
	MinCount int
}

// Challenge is a figure to build from the palette
type Challenge struct {
	Title    string
	Requires []Requirement
}

// Challenges are played in order
var Challenges = []Challenge{
	{Title: "Build a house", Requires: []Requirement{{Shape: 3, MinCount: 1}, {Shape: 5, MinCount: 1}}},
	{Title: "Make a cat", Requires: []Requirement{{Shape: 1, MinCount: 1}, {Shape: 6, MinCount: 2}}},
	{Title: "Build a robot", Requires: []Requirement{{Shape: 7, MinCount: 2}, {Shape: 2, MinCount: 2}}},
}

// Shapes serves the fixed challenge list; Params.Sequence picks the challenge
type Shapes struct{}

func (Shapes) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	challenge := Challenges[p.Sequence%len(Challenges)]

	choices := make([]models.Choice, len(Palette))
	for i, s := range Palette {
		choices[i] = models.Choice{Value: i, Label: s.String()}
	}

	var answers []int
	for _, req := range challenge.Requires {
		for range req.MinCount {
			answers = append(answers, req.Shape)
		}
	}

	return &models.Problem{
		Prompt:  fmt.Sprintf("%s (%d of %d)", challenge.Title, p.Sequence%len(Challenges)+1, len(Challenges)),
		Choices: choices,
		Answers: answers,
	}, nil
}
