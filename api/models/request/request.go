package request

type Login struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Invoke is the JSON body of a function submission.
type Invoke struct {
	Args  map[string]string `json:"args"`
	Value string            `json:"value" binding:"omitempty,amount"`
}

type Records struct {
	Function string `form:"function"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

type Events struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
