package command

// Result is the only value Process returns.
type Result struct {
	Success bool
	Message string
	// Data is a *models.Group for create_group and a *models.Expense for add_expense.
	Data      any
	ErrorKind Kind
}

func failed(err error) Result {
	return Result{Message: userMessage(err), ErrorKind: KindOf(err)}
}
