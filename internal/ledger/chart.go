package ledger

import "sort"

// UnknownAccountName labels codes missing from the chart.
const UnknownAccountName = "Compte inconnu"

// Chart is the simplified OHADA chart of accounts used by the group.
var Chart = []Account{
	{Code: "101", Name: "Capital", Class: "1", Side: SideCredit},
	{Code: "106", Name: "Report à nouveau", Class: "1", Side: SideCredit},
	{Code: "121", Name: "Résultat net", Class: "1", Side: SideCredit},
	{Code: "201", Name: "Immobilisations incorporelles", Class: "2", Side: SideDebit},
	{Code: "211", Name: "Terrains", Class: "2", Side: SideDebit},
	{Code: "241", Name: "Matériel industriel", Class: "2", Side: SideDebit},
	{Code: "311", Name: "Matières premières", Class: "3", Side: SideDebit},
	{Code: "312", Name: "Produits intermédiaires", Class: "3", Side: SideDebit},
	{Code: "313", Name: "Produits finis", Class: "3", Side: SideDebit},
	{Code: "401", Name: "Fournisseurs", Class: "4", Side: SideCredit},
	{Code: "411", Name: "Clients", Class: "4", Side: SideDebit},
	{Code: "421", Name: "Personnel", Class: "4", Side: SideCredit},
	{Code: "445", Name: "État - Taxes et impôts", Class: "4", Side: SideCredit},
	{Code: "511", Name: "Caisse", Class: "5", Side: SideDebit},
	{Code: "512", Name: "Banque", Class: "5", Side: SideDebit},
	{Code: "601", Name: "Achats de matières premières", Class: "6", Side: SideDebit},
	{Code: "602", Name: "Achats de fournitures", Class: "6", Side: SideDebit},
	{Code: "603", Name: "Achats de fournitures externes", Class: "6", Side: SideDebit},
	{Code: "604", Name: "Achats de fournitures d'entretien", Class: "6", Side: SideDebit},
	{Code: "605", Name: "Achats de marchandises", Class: "6", Side: SideDebit},
	{Code: "607", Name: "Services extérieurs", Class: "6", Side: SideDebit},
	{Code: "613", Name: "Locations", Class: "6", Side: SideDebit},
	{Code: "614", Name: "Charges de personnel", Class: "6", Side: SideDebit},
	{Code: "615", Name: "Impôts et taxes", Class: "6", Side: SideDebit},
	{Code: "621", Name: "Rémunération du personnel", Class: "6", Side: SideDebit},
	{Code: "701", Name: "Ventes de produits finis", Class: "7", Side: SideCredit},
	{Code: "702", Name: "Ventes de produits intermédiaires", Class: "7", Side: SideCredit},
	{Code: "703", Name: "Ventes de produits résiduels", Class: "7", Side: SideCredit},
	{Code: "704", Name: "Travaux", Class: "7", Side: SideCredit},
	{Code: "705", Name: "Études", Class: "7", Side: SideCredit},
	{Code: "706", Name: "Prestations de services", Class: "7", Side: SideCredit},
	{Code: "708", Name: "Produits annexes", Class: "7", Side: SideCredit},
}

// Journal describes a journal code.
type Journal struct {
	Code JournalCode `json:"code"`
	Name string      `json:"name"`
}

// Journals lists the accounting journals.
var Journals = []Journal{
	{Code: JournalPurchases, Name: "Journal des achats"},
	{Code: JournalSales, Name: "Journal des ventes"},
	{Code: JournalBank, Name: "Journal de banque"},
	{Code: JournalCash, Name: "Journal de caisse"},
	{Code: JournalMisc, Name: "Journal des opérations diverses"},
}

// DocumentKind describes a supporting document type.
type DocumentKind struct {
	Code DocumentType `json:"code"`
	Name string       `json:"name"`
}

// DocumentKinds lists the supporting document types.
var DocumentKinds = []DocumentKind{
	{Code: DocumentInvoice, Name: "Facture"},
	{Code: DocumentDeliveryNote, Name: "Bon de livraison"},
	{Code: DocumentPurchaseOrder, Name: "Bon de commande"},
	{Code: DocumentCheque, Name: "Chèque"},
	{Code: DocumentTransfer, Name: "Ordre de virement"},
	{Code: DocumentCreditNote, Name: "Avoir"},
	{Code: DocumentContract, Name: "Contrat"},
	{Code: DocumentDeclaration, Name: "Déclaration"},
}

var chartIndex = func() map[string]Account {
	idx := make(map[string]Account, len(Chart))
	for _, acc := range Chart {
		idx[acc.Code] = acc
	}
	return idx
}()

// LookupAccount returns the chart account for code.
func LookupAccount(code string) (Account, bool) {
	acc, ok := chartIndex[code]
	return acc, ok
}

// AccountName returns the chart name of code, or UnknownAccountName.
func AccountName(code string) string {
	if acc, ok := chartIndex[code]; ok {
		return acc.Name
	}
	return UnknownAccountName
}

// AccountLabel renders "code - name" as shown in exports.
func AccountLabel(code string) string {
	if acc, ok := chartIndex[code]; ok {
		return acc.Code + " - " + acc.Name
	}
	return UnknownAccountName
}

// AccountsByClass returns the chart grouped by class digit, classes ascending.
func AccountsByClass() map[string][]Account {
	out := make(map[string][]Account)
	for _, acc := range Chart {
		out[acc.Class] = append(out[acc.Class], acc)
	}
	for _, accs := range out {
		sort.Slice(accs, func(i, j int) bool { return accs[i].Code < accs[j].Code })
	}
	return out
}
