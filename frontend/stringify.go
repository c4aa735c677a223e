package frontend

import (
	"fmt"
	"strings"
)

// StringifyAST renders a debug s-expression view of a parsed program, used
// by the CLI's --debug-ast flag to show parser output without exact source
// spans
func StringifyAST(prog *ProgramNode) string {
	return stringifyNode(prog)
}

func stringifyNode(generic Node) string {
	switch node := generic.(type) {
	case *ProgramNode:
		return fmt.Sprintf("(program (locals=%d upvalues=%d) (\n%s\n))",
			len(node.Locals), len(node.Upvalues), indentString(stringifyStmts(node.Statements)))
	case *BlockStmt:
		return fmt.Sprintf("(block (\n%s\n))", indentString(stringifyStmts(node.Statements)))
	case *DeclarationStmt:
		return fmt.Sprintf("(auto %s %s)", node.Assignee.Name, stringifyNode(node.Assignment))
	case *AssignmentStmt:
		return fmt.Sprintf("(%s %s %s)", node.Operator, stringifyNode(node.Target), stringifyNode(node.Value))
	case *ExprStmt:
		return stringifyNode(node.Argument)
	case *IfStmt:
		s := fmt.Sprintf("(if %s %s", stringifyNode(node.Condition), stringifyNode(node.Then))
		if node.Else != nil {
			s += " " + stringifyNode(node.Else)
		}
		return s + ")"
	case *WhileStmt:
		return fmt.Sprintf("(while %s %s)", stringifyNode(node.Condition), stringifyNode(node.Body))
	case *DoWhileStmt:
		return fmt.Sprintf("(do-while %s %s)", stringifyNode(node.Body), stringifyNode(node.Condition))
	case *ForStmt:
		init, cond, post := "-", "-", "-"
		if node.Init != nil {
			init = stringifyNode(node.Init)
		}
		if node.Condition != nil {
			cond = stringifyNode(node.Condition)
		}
		if node.Post != nil {
			post = stringifyNode(node.Post)
		}
		return fmt.Sprintf("(for %s %s %s %s)", init, cond, post, stringifyNode(node.Body))
	case *ForeachStmt:
		key := "_"
		if node.KeyName != nil {
			key = node.KeyName.Name
		}
		return fmt.Sprintf("(foreach %s %s %s %s)", key, node.ValueName.Name, stringifyNode(node.Subject), stringifyNode(node.Body))
	case *SwitchStmt:
		var cases []string
		for _, c := range node.Cases {
			label := "default"
			if c.Value != nil {
				label = stringifyNode(c.Value)
			}
			cases = append(cases, fmt.Sprintf("(case %s %s)", label, stringifyStmts(c.Statements)))
		}
		return fmt.Sprintf("(switch %s (\n%s\n))", stringifyNode(node.Subject), indentString(strings.Join(cases, "\n")))
	case *BreakStmt:
		return "(break)"
	case *ContinueStmt:
		return "(continue)"
	case *ReturnStmt:
		if node.Argument == nil {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", stringifyNode(node.Argument))
	case *DeleteStmt:
		return fmt.Sprintf("(delete %s)", stringifyNode(node.Target))
	case *IdentExpr:
		return node.Name
	case *NullLiteral:
		return "null"
	case *BoolLiteral:
		return fmt.Sprintf("%t", node.Value)
	case *IntLiteral:
		return fmt.Sprintf("%d", node.Value)
	case *FloatLiteral:
		return fmt.Sprintf("%g", node.Value)
	case *StrLiteral:
		return fmt.Sprintf("%q", node.Value)
	case *ArrayLiteral:
		var items []string
		for _, it := range node.Items {
			if it.Index != nil {
				items = append(items, fmt.Sprintf("[%s] = %s", stringifyNode(it.Index), stringifyNode(it.Value)))
			} else {
				items = append(items, stringifyNode(it.Value))
			}
		}
		return fmt.Sprintf("[] {%s}", strings.Join(items, " "))
	case *StructLiteral:
		var items []string
		for _, it := range node.Items {
			items = append(items, fmt.Sprintf("%s: %s", stringifyNode(it.Key), stringifyNode(it.Value)))
		}
		return fmt.Sprintf("(struct %s)", strings.Join(items, ", "))
	case *ClosureLiteral:
		var params []string
		for _, param := range node.Parameters {
			params = append(params, param.Name.Name)
		}
		return fmt.Sprintf("(closure (locals=%d upvalues=%d) (%s) %s)",
			len(node.Locals), len(node.Upvalues), strings.Join(params, " "), stringifyNode(node.Body))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", node.Operator.Lexeme, stringifyNode(node.Operand))
	case *PostfixExpr:
		return fmt.Sprintf("(post%s %s)", node.Operator.Lexeme, stringifyNode(node.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", node.Operator, stringifyNode(node.Left), stringifyNode(node.Right))
	case *TernaryExpr:
		return fmt.Sprintf("(?: %s %s %s)", stringifyNode(node.Condition), stringifyNode(node.Then), stringifyNode(node.Else))
	case *AssignExpr:
		return fmt.Sprintf("(%s %s %s)", node.Operator, stringifyNode(node.Target), stringifyNode(node.Value))
	case *CallExpr:
		var args []string
		for _, arg := range node.Arguments {
			args = append(args, stringifyNode(arg))
		}
		return fmt.Sprintf("(call %s %s)", stringifyNode(node.Callee), strings.Join(args, " "))
	case *IndexAccessExpr:
		return fmt.Sprintf("(index %s %s)", stringifyNode(node.Root), stringifyNode(node.Index))
	case *FieldAccessExpr:
		return fmt.Sprintf("(field %s %s)", stringifyNode(node.Root), node.Field.Name)
	case *CastExpr:
		return fmt.Sprintf("(cast %s %s)", node.TypeName.Lexeme, stringifyNode(node.Operand))
	case *TypeofExpr:
		return fmt.Sprintf("(typeof %s)", stringifyNode(node.Operand))
	case *SizeofExpr:
		return fmt.Sprintf("(sizeof %s)", stringifyNode(node.Operand))
	case *RequireExpr:
		return fmt.Sprintf("(require %q)", node.Path.Value)
	case *GroupExpr:
		return stringifyNode(node.Inner)
	default:
		return fmt.Sprintf("<unknown %T>", node)
	}
}

func stringifyStmts(stmts []Stmt) string {
	var lines []string
	for _, s := range stmts {
		lines = append(lines, stringifyNode(s))
	}
	return strings.Join(lines, "\n")
}

func indentString(s string) string {
	lines := strings.Split(s, "\n")

	for i, l := range lines {
		lines[i] = "   " + l
	}

	return strings.Join(lines, "\n")
}
