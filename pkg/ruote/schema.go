package ruote

// schemaNode describes what the API serves at one position of the resource
// tree: which plain children exist, which keyed lookups are supported, and
// whether create accepts a local-file upload field.
type schemaNode struct {
	children    map[string]*schemaNode
	keyed       map[string]*schemaNode
	uploadField string
}

// defaultSchema mirrors the service catalog. Individual records are leaves;
// collections are keyed by id.
func defaultSchema() *schemaNode {
	record := &schemaNode{}
	return &schemaNode{
		children: map[string]*schemaNode{
			"users": {
				children: map[string]*schemaNode{"me": record},
				keyed:    map[string]*schemaNode{"id": record},
			},
			"clusters": {keyed: map[string]*schemaNode{"id": record}},
			"queues":   {keyed: map[string]*schemaNode{"id": record}},
			"files": {
				keyed:       map[string]*schemaNode{"id": record},
				uploadField: "file",
			},
			"apps": {keyed: map[string]*schemaNode{"id": record}},
			"jobs": {keyed: map[string]*schemaNode{"id": record}},
			"sso": {
				children: map[string]*schemaNode{"token_by_email": record},
			},
		},
	}
}
