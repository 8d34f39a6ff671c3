package anki

import "context"

// CardTemplate is one card template's front and back markup. The wire field
// names are capitalized by the service.
type CardTemplate struct {
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// ModelTemplate is a named card template, used when defining a new model.
type ModelTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// ModelDefinition describes a new note type for CreateModel.
type ModelDefinition struct {
	Name      string          `json:"modelName"`
	Fields    []string        `json:"inOrderFields"`
	CSS       string          `json:"css,omitempty"`
	IsCloze   bool            `json:"isCloze,omitempty"`
	Templates []ModelTemplate `json:"cardTemplates"`
}

type modelNameParams struct {
	Model string `json:"modelName"`
}

type updateModelTemplatesParams struct {
	Model modelTemplatesUpdate `json:"model"`
}

type modelTemplatesUpdate struct {
	Name      string                  `json:"name"`
	Templates map[string]CardTemplate `json:"templates"`
}

type updateModelStylingParams struct {
	Model modelStylingUpdate `json:"model"`
}

type modelStylingUpdate struct {
	Name string `json:"name"`
	CSS  string `json:"css"`
}

type modelStylingResult struct {
	CSS string `json:"css"`
}

// ModelNames returns the names of every note type.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	return invoke[[]string](ctx, c, "modelNames", nil)
}

// ModelNamesAndIDs returns note type names mapped to their IDs.
func (c *Client) ModelNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	return invoke[map[string]int64](ctx, c, "modelNamesAndIds", nil)
}

// ModelFieldNames returns the field names of a note type, in display order.
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	return invoke[[]string](ctx, c, "modelFieldNames", modelNameParams{Model: model})
}

// ModelTemplates returns a note type's card templates keyed by template name.
func (c *Client) ModelTemplates(ctx context.Context, model string) (map[string]CardTemplate, error) {
	return invoke[map[string]CardTemplate](ctx, c, "modelTemplates", modelNameParams{Model: model})
}

// UpdateModelTemplates replaces the given templates of an existing note type.
// Templates not named in the map are left untouched.
func (c *Client) UpdateModelTemplates(ctx context.Context, model string, templates map[string]CardTemplate) error {
	return invokeNoResult(ctx, c, "updateModelTemplates", updateModelTemplatesParams{
		Model: modelTemplatesUpdate{Name: model, Templates: templates},
	})
}

// ModelStyling returns the shared CSS of a note type.
func (c *Client) ModelStyling(ctx context.Context, model string) (string, error) {
	styling, err := invoke[modelStylingResult](ctx, c, "modelStyling", modelNameParams{Model: model})
	if err != nil {
		return "", err
	}
	return styling.CSS, nil
}

// UpdateModelStyling replaces the shared CSS of a note type.
func (c *Client) UpdateModelStyling(ctx context.Context, model, css string) error {
	return invokeNoResult(ctx, c, "updateModelStyling", updateModelStylingParams{
		Model: modelStylingUpdate{Name: model, CSS: css},
	})
}

// CreateModel defines a new note type.
func (c *Client) CreateModel(ctx context.Context, def ModelDefinition) error {
	return invokeNoResult(ctx, c, "createModel", def)
}
