package monday

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation documents sent to the monday API. Each one is parsed when the
// package loads so a typo fails at start-up instead of on a user's request.
var (
	opListBoards = mustParse(`
		query ListBoards {
			boards {
				id
				name
				workspace {
					id
					name
				}
				groups {
					id
					title
				}
			}
		}
	`)

	opListItems = mustParse(`
		query ListItems($boardId: [ID!]!, $groupId: [String], $limit: Int!) {
			boards(ids: $boardId) {
				id
				groups(ids: $groupId) {
					items_page(limit: $limit) {
						items {
							id
							name
							created_at
							updated_at
							column_values {
								id
								text
								value
							}
						}
					}
				}
			}
		}
	`)

	opMe = mustParse(`
		query Me {
			me {
				id
				name
				email
			}
		}
	`)

	opCreateItem = mustParse(`
		mutation CreateItem($boardId: ID!, $groupId: String!, $itemName: String!) {
			create_item(board_id: $boardId, group_id: $groupId, item_name: $itemName) {
				id
				name
				url
			}
		}
	`)

	opCreateUpdate = mustParse(`
		mutation CreateUpdate($itemId: ID!, $body: String!) {
			create_update(item_id: $itemId, body: $body) {
				id
			}
		}
	`)

	opAddFileToUpdate = mustParse(`
		mutation AddFileToUpdate($updateId: ID!, $file: File!) {
			add_file_to_update(update_id: $updateId, file: $file) {
				id
				name
			}
		}
	`)
)

func mustParse(doc string) string {
	if _, err := parser.ParseQuery(&ast.Source{Input: doc}); err != nil {
		panic(fmt.Sprintf("monday: invalid operation document: %v", err))
	}
	return doc
}

// operationName returns the name of the first operation in doc, for logging.
func operationName(doc string) string {
	parsed, err := parser.ParseQuery(&ast.Source{Input: doc})
	if err != nil || len(parsed.Operations) == 0 {
		return "invalid"
	}
	if name := parsed.Operations[0].Name; name != "" {
		return name
	}
	return "anonymous"
}
