package query

// tagNumbers maps the query tag names onto the numeric header tags used by
// the header-backed runner. The values are the stable rpmtag numbers.
var tagNumbers = map[string]int{
	"NAME":          1000,
	"VERSION":       1001,
	"RELEASE":       1002,
	"EPOCH":         1003,
	"SUMMARY":       1004,
	"DESCRIPTION":   1005,
	"VENDOR":        1011,
	"LICENSE":       1014,
	"PACKAGER":      1015,
	"GROUP":         1016,
	"CHANGELOGTIME": 1080,
	"CHANGELOGNAME": 1081,
	"CHANGELOGTEXT": 1082,
	"URL":           1020,
	"ARCH":          1022,
	"DISTRIBUTION":  1010,
	"SOURCERPM":     1044,
	"VCS":           5034,

	"PAYLOADCOMPRESSOR": 1125,
	"PAYLOADFLAGS":      1126,

	"PREIN":            1023,
	"POSTIN":           1024,
	"PREUN":            1025,
	"POSTUN":           1026,
	"PREINPROG":        1085,
	"POSTINPROG":       1086,
	"PREUNPROG":        1087,
	"POSTUNPROG":       1088,
	"PRETRANS":         1151,
	"POSTTRANS":        1152,
	"PRETRANSPROG":     1153,
	"POSTTRANSPROG":    1154,
	"VERIFYSCRIPT":     1079,
	"VERIFYSCRIPTPROG": 1091,

	"FILENAMES":       5000,
	"FILESIZES":       1028,
	"FILEMODES":       1030,
	"FILEMTIMES":      1034,
	"FILELINKTOS":     1036,
	"FILEFLAGS":       1037,
	"FILEUSERNAME":    1039,
	"FILEGROUPNAME":   1040,
	"FILEVERIFYFLAGS": 1045,
	"FILELANGS":       1097,
	"FILECAPS":        5010,

	"PROVIDENAME":       1047,
	"PROVIDEFLAGS":      1112,
	"PROVIDEVERSION":    1113,
	"REQUIRENAME":       1049,
	"REQUIREFLAGS":      1048,
	"REQUIREVERSION":    1050,
	"CONFLICTNAME":      1054,
	"CONFLICTFLAGS":     1053,
	"CONFLICTVERSION":   1055,
	"OBSOLETENAME":      1090,
	"OBSOLETEFLAGS":     1114,
	"OBSOLETEVERSION":   1115,
	"ORDERNAME":         5035,
	"ORDERVERSION":      5036,
	"ORDERFLAGS":        5037,
	"RECOMMENDNAME":     5046,
	"RECOMMENDVERSION":  5047,
	"RECOMMENDFLAGS":    5048,
	"SUGGESTNAME":       5049,
	"SUGGESTVERSION":    5050,
	"SUGGESTFLAGS":      5051,
	"SUPPLEMENTNAME":    5052,
	"SUPPLEMENTVERSION": 5053,
	"SUPPLEMENTFLAGS":   5054,
	"ENHANCENAME":       5055,
	"ENHANCEVERSION":    5056,
	"ENHANCEFLAGS":      5057,

	"TRIGGERSCRIPTS":    1065,
	"TRIGGERNAME":       1066,
	"TRIGGERVERSION":    1067,
	"TRIGGERFLAGS":      1068,
	"TRIGGERINDEX":      1069,
	"TRIGGERSCRIPTPROG": 1092,
	"TRIGGERTYPE":       5099,
	"TRIGGERCONDS":      5098,

	"FILETRIGGERSCRIPTS":     5066,
	"FILETRIGGERSCRIPTPROG":  5067,
	"FILETRIGGERSCRIPTFLAGS": 5068,
	"FILETRIGGERNAME":        5069,
	"FILETRIGGERINDEX":       5070,
	"FILETRIGGERVERSION":     5071,
	"FILETRIGGERFLAGS":       5072,
	"FILETRIGGERPRIORITIES":  5084,

	"TRANSFILETRIGGERSCRIPTS":     5073,
	"TRANSFILETRIGGERSCRIPTPROG":  5074,
	"TRANSFILETRIGGERSCRIPTFLAGS": 5075,
	"TRANSFILETRIGGERNAME":        5076,
	"TRANSFILETRIGGERINDEX":       5077,
	"TRANSFILETRIGGERVERSION":     5078,
	"TRANSFILETRIGGERFLAGS":       5079,
	"TRANSFILETRIGGERPRIORITIES":  5085,
}
