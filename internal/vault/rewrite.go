package vault

import (
	"fmt"
	"regexp"
)

// replaceWikiLinkTargets replaces wiki link targets matching oldName with newName.
// Handles: [[old]], [[old.md]], [[old#section]], [[old|alias]], [[old#section|alias]]
// and the .md variants of each. Matching is case-insensitive on the target.
func replaceWikiLinkTargets(content, oldName, newName string) string {
	re := regexp.MustCompile(`(?i)\[\[` + regexp.QuoteMeta(oldName) + `((?:\.md)?(?:[#|][^\]]*?)?)\]\]`)
	// The suffix keeps its original spelling; only the target changes.
	return re.ReplaceAllStringFunc(content, func(match string) string {
		suffix := re.FindStringSubmatch(match)[1]
		return "[[" + newName + suffix + "]]"
	})
}

// RewriteLinks replaces wiki links to oldName with newName in every note of
// the vault and returns the relative paths of the notes it changed.
func (v *Vault) RewriteLinks(oldName, newName string) ([]string, error) {
	if oldName == newName {
		return nil, nil
	}

	notes, err := v.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var changed []string
	for _, n := range notes {
		ok, err := v.RewriteLinksInNote(n.Path, oldName, newName)
		if err != nil {
			return changed, err
		}
		if ok {
			changed = append(changed, n.Path)
		}
	}
	return changed, nil
}

// RewriteLinksInNote reads a note, replaces wiki link targets from oldName
// to newName, and writes it back if any changes were made.
// Returns true if the file was modified.
func (v *Vault) RewriteLinksInNote(rel, oldName, newName string) (bool, error) {
	data, err := v.ReadNote(rel)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rel, err)
	}

	original := string(data)
	updated := replaceWikiLinkTargets(original, oldName, newName)
	if updated == original {
		return false, nil
	}

	if err := writeFileAtomic(v.fs, v.Abs(rel), []byte(updated)); err != nil {
		return false, fmt.Errorf("write %s: %w", rel, err)
	}
	return true, nil
}
