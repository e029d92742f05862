package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stage is a single named aggregation stage. Stages are kept as typed
// descriptors until Build so a pipeline can be inspected in tests.
type Stage struct {
	Op   string
	Body any
}

// Pipeline composes aggregation stages in order. The zero value is usable.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Match appends a $match stage with the given filter.
func (p *Pipeline) Match(filter bson.D) *Pipeline {
	p.stages = append(p.stages, Stage{Op: "$match", Body: filter})
	return p
}

// Project appends a $project stage with the given field spec.
func (p *Pipeline) Project(spec bson.D) *Pipeline {
	p.stages = append(p.stages, Stage{Op: "$project", Body: spec})
	return p
}

// Unwind appends a $unwind stage over the given array field path.
func (p *Pipeline) Unwind(path string) *Pipeline {
	p.stages = append(p.stages, Stage{Op: "$unwind", Body: path})
	return p
}

// Group appends a $group stage keyed by id with the given accumulators.
func (p *Pipeline) Group(id any, accumulators bson.D) *Pipeline {
	body := bson.D{{Key: "_id", Value: id}}
	body = append(body, accumulators...)
	p.stages = append(p.stages, Stage{Op: "$group", Body: body})
	return p
}

// Build renders the composed stages into a driver pipeline.
func (p *Pipeline) Build() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, bson.D{{Key: s.Op, Value: s.Body}})
	}
	return out
}

// Stages returns the stage descriptors in composition order.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}
