package testutil

// FermentablesJSON is the fermentable inventory fixture. Munich has no
// inventory field.
const FermentablesJSON = `[
	{"_id": "f-pils", "name": "Pilsner", "supplier": "Weyermann", "inventory": 25},
	{"_id": "f-crystal", "name": "Crystal 60", "supplier": "Simpsons", "inventory": 2},
	{"_id": "f-munich", "name": "Munich", "supplier": "Weyermann"}
]`

// HopsJSON is the hop inventory fixture.
const HopsJSON = `[
	{"_id": "h-citra", "name": "Citra", "origin": "US", "inventory": 100, "alpha": 12, "type": "Pellet", "year": 2023},
	{"_id": "h-saaz", "name": "Saaz", "origin": "Czech", "inventory": 50, "alpha": 3.5, "type": "Pellet"},
	{"_id": "h-citra-cryo", "name": "Citra", "origin": "US", "inventory": 10, "alpha": 22, "type": "Cryo", "year": "2022", "userNotes": "lot 7"}
]`

// BatchesJSON holds two production batches out of order and one test batch
// numbered above the cut-off.
const BatchesJSON = `[
	{"_id": "b-12", "batchNo": 12, "status": "Planning", "recipe": {
		"name": "Pale Ale",
		"fermentables": [
			{"_id": "f-pils", "name": "Pilsner", "supplier": "Weyermann", "amount": 5},
			{"_id": "f-crystal", "name": "Crystal 60", "supplier": "Simpsons", "amount": 0.5}
		],
		"hops": [
			{"_id": "h-citra", "name": "Citra", "origin": "US", "alpha": 12, "type": "Pellet", "year": 2023, "amount": 30},
			{"_id": "h-citra", "name": "Citra", "origin": "US", "alpha": 12, "type": "Pellet", "year": 2023, "amount": 50}
		]
	}},
	{"_id": "b-1200", "batchNo": 1200, "status": "Planning", "recipe": {
		"name": "Test Batch",
		"fermentables": [{"_id": "f-pils", "name": "Pilsner", "supplier": "Weyermann", "amount": 100}],
		"hops": []
	}},
	{"_id": "b-7", "batchNo": 7, "status": "Planning", "recipe": {
		"name": "Czech Lager",
		"fermentables": [
			{"_id": "f-pils", "name": "Pilsner", "supplier": "Weyermann", "amount": 22},
			{"_id": "f-wheat", "name": "Wheat", "supplier": "Best", "amount": 1.5}
		],
		"hops": [
			{"_id": "h-saaz", "name": "Saaz", "origin": "Czech", "alpha": 3.5, "type": "Pellet", "amount": 120},
			{"_id": "h-magnum", "name": "Magnum", "origin": "DE", "alpha": 14, "type": "Pellet", "amount": 10}
		]
	}}
]`

// BatchDetailJSON is served for /batches/b-12.
const BatchDetailJSON = `{
	"_id": "b-12", "batchNo": 12, "status": "Planning",
	"recipe": {"name": "Pale Ale", "style": {"name": "American Pale Ale", "type": "Ale"}, "fermentables": [], "hops": []},
	"measuredOg": 1.05, "measuredFg": 1.01, "measuredAbv": 5.3, "estimatedIbu": 40
}`
